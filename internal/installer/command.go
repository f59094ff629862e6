package installer

import (
	"fmt"
	"strings"
)

// ShellCommand is a program invocation inside the server directory
type ShellCommand struct {
	Dir  string
	Path string
	Args []string
}

func (c *ShellCommand) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// InstallerJar is the name the installer is saved under in the server dir
const InstallerJar = "forge-installer.jar"

// InstallerURL returns the Maven location of the installer for a
// Minecraft version and loader build
func InstallerURL(mavenURL, mcVersion, loaderVersion string) string {
	coord := mcVersion + "-" + loaderVersion

	return fmt.Sprintf("%s/%s/forge-%s-installer.jar", strings.TrimRight(mavenURL, "/"), coord, coord)
}

// VanillaServers lists known vanilla server jar downloads by Minecraft version
var VanillaServers = map[string]string{
	"1.12.2": "https://launcher.mojang.com/v1/objects/886945bfb2b978778c3a0288fd7fab09d315b25f/server.jar",
}

// VanillaURL returns the server jar URL for mcVersion. override wins over
// the built-in table.
func VanillaURL(mcVersion, override string) (string, bool) {
	if override != "" {
		return override, true
	}

	url, ok := VanillaServers[mcVersion]
	return url, ok
}

// VanillaJar is the file name the vanilla server jar is expected under
func VanillaJar(mcVersion string) string {
	return "minecraft_server." + mcVersion + ".jar"
}

// GetInstallCommand returns the command that installs the server into dir
func GetInstallCommand(javaPath, dir string) *ShellCommand {
	return &ShellCommand{
		Dir:  dir,
		Path: javaPath,
		Args: []string{"-jar", InstallerJar, "--installServer"},
	}
}
