package subnet

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/projectdiscovery/gologger"
	fileutil "github.com/projectdiscovery/utils/file"
)

// ReadFile reads subnets from the file at path, one per line.
// If the file cannot be opened a warning is logged and an empty list is returned.
func ReadFile(path string) []Spec {
	if !fileutil.FileExists(path) {
		gologger.Warning().Msgf("Error reading subnets from file %s: file does not exist", path)
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		gologger.Warning().Msgf("Error reading subnets from file %s: %s", path, err)
		return nil
	}
	defer func() {
		_ = file.Close()
	}()

	specs, err := Read(file)
	if err != nil {
		gologger.Warning().Msgf("Error reading subnets from file %s: %s", path, err)
	}
	return specs
}

// Read parses subnets from r. Blank lines and '#' comments are ignored,
// invalid lines are skipped with a warning and duplicates are dropped.
// Subnets read before a read error are returned along with the error.
func Read(r io.Reader) ([]Spec, error) {
	var specs []Spec
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		spec, err := Parse(line)
		if err != nil {
			gologger.Warning().Msgf("Invalid subnet: %s. Skipping.", line)
			gologger.Verbose().Msgf("%s: %s", line, err)
			continue
		}

		key := spec.String()
		if _, exists := seen[key]; exists {
			gologger.Verbose().Msgf("Duplicate subnet %s (from %q). Skipping.", key, line)
			continue
		}
		seen[key] = struct{}{}
		specs = append(specs, spec)
	}

	return specs, scanner.Err()
}
