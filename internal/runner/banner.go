package runner

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/pingsweep/pkg/version"
)

const banner = `
       _
 ___  (_)___  ___ ____ _    _____ ___ ___
/ _ \/ / _ \/ _ '(_-< |/|/ / -_) -_) _ \
/ .__/_/_//_/\_, /___/__,__/\__/\__/ .__/
/_/         /___/                 /_/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\t\t\t%s\n\n", version.GetVersion())
}
