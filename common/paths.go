package common

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

const HomeVariableName = "BANKDAPP_HOME"

// DataDir is the directory holding accounts, networks, deployments and the
// config file. It is ~/.bankdapp unless BANKDAPP_HOME is set.
func DataDir() string {
	if dir := strings.TrimSpace(os.Getenv(HomeVariableName)); dir != "" {
		return dir
	}
	usr, err := user.Current()
	if err != nil {
		return ".bankdapp"
	}
	return filepath.Join(usr.HomeDir, ".bankdapp")
}
