package plugin

import "github.com/tracekit/stacklook/pkg/config"

// MenuLabel is where hosts put the configuration dialog entry.
const MenuLabel = "Tools/Stacklook Configuration"

// InstallMenu adds the configuration dialog entry to the host shell.
// Picking the menu item hands the shared configuration to open, which
// is expected to show a dialog editing it through Snapshot and Apply.
func InstallMenu(sh Shell, cfg *config.Config, open func(*config.Config)) {
	if sh == nil || open == nil {
		return
	}
	sh.AddMenuAction(MenuLabel, func() {
		open(cfg)
	})
}
