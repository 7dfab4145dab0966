package build

import "runtime/debug"

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

func IsDevelopment() bool {
	return Mode == ModeDevelopment
}

func IsProduction() bool {
	return Mode == ModeProduction
}

// Info describes the running binary.
type Info struct {
	Name      string
	Version   string
	Commit    string
	BuildDate string
	Mode      string
	GoVersion string
}

// Current returns the build variables, filling the commit from the Go build
// info when it was not set by the linker.
func Current() Info {
	info := Info{
		Name:      Name,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		Mode:      Mode,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	if info.Commit != "unknown" {
		return info
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			info.Commit = s.Value
		}
	}
	return info
}
