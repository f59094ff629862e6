package config

import (
	"path/filepath"

	"github.com/Norgate-AV/mpb/internal/cache"
	"github.com/Norgate-AV/mpb/internal/resolve"
)

// Layout holds every path a build reads or writes
type Layout struct {
	// Pack root
	Base string

	// manifest.json in the pack root
	Manifest string

	// Staging directory for hashed artifacts (<base>/mods)
	Mods string

	// Build output root (<base>/buildOut)
	Out string

	// Client bundle root and its overrides directory
	Client    string
	Overrides string

	// Server bundle root and its mods directory
	Server     string
	ServerMods string

	// Local artifact cache (<base>/buildOut/modcache)
	Cache string

	// Resolution store for indexed files
	Index string

	// Generated modlist page
	Modlist string
}

// NewLayout derives the layout for the pack rooted at base
func NewLayout(base string) Layout {
	out := filepath.Join(base, "buildOut")
	client := filepath.Join(out, "client")
	server := filepath.Join(out, "server")

	return Layout{
		Base:       base,
		Manifest:   filepath.Join(base, "manifest.json"),
		Mods:       filepath.Join(base, "mods"),
		Out:        out,
		Client:     client,
		Overrides:  filepath.Join(client, "overrides"),
		Server:     server,
		ServerMods: filepath.Join(server, "mods"),
		Cache:      filepath.Join(out, cache.DefaultCacheDir),
		Index:      filepath.Join(out, resolve.DefaultStoreFile),
		Modlist:    filepath.Join(out, "modlist.html"),
	}
}

// Client bundle directories copied into overrides
var ClientDirs = []string{"scripts", "resources", "config", "mods", "structures"}

// Server bundle directories
var ServerDirs = []string{"scripts", "config", "mods", "structures"}

// Files copied from the pack root into the server bundle
var ServerFiles = []string{"manifest.json", "LICENSE", "launch.sh", "launch.bat"}
