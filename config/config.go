// config.go - User settings, loaded from a Lua script

/*
z80tonops - Z80 source timing annotator
License: GPLv3 or later
*/

// Package config holds the settings of the annotator. Settings come from
// built-in defaults, then an optional Lua script, then the command line.
//
// The script sets plain globals:
//
//	show_alternate = true
//	trust_comments = false
//	markers = true
//	column = 40
//	color = "auto"
//	jobs = 4
//
// Globals the script leaves unset keep their previous value. Unknown globals
// are ignored so that a script may compute values with helper variables.
package config

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
	lua "github.com/yuin/gopher-lua"
)

const (
	vendorName = "cpcsdk"
	appName    = "z80tonops"

	// ScriptName is the file looked for in the per-user config folders.
	ScriptName = "config.lua"
)

// Config is the full set of user settings.
type Config struct {
	ShowAlternate bool
	TrustComments bool
	Markers       bool
	Column        int
	Color         string
	Jobs          int
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Markers: true,
		Color:   "auto",
		Jobs:    runtime.NumCPU(),
	}
}

// Validate checks the values a script or flag may have set.
func (c Config) Validate() error {
	switch strings.ToLower(c.Color) {
	case "auto", "always", "never":
	default:
		return errors.Errorf("color must be auto, always or never, not %q", c.Color)
	}
	if c.Column < 0 {
		return errors.Errorf("column must not be negative (%d)", c.Column)
	}
	if c.Jobs < 1 {
		return errors.Errorf("jobs must be at least 1 (%d)", c.Jobs)
	}
	return nil
}

// LoadScript runs a Lua script and copies the globals it sets into c. The name
// is used in error messages.
func (c *Config) LoadScript(name, src string) error {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(src); err != nil {
		return errors.Wrapf(err, "running %s", name)
	}
	return errors.Wrapf(c.fromGlobals(L), "in %s", name)
}

// LoadFile runs the Lua script at path.
func (c *Config) LoadFile(path string) error {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return errors.Wrapf(err, "running %s", path)
	}
	return errors.Wrapf(c.fromGlobals(L), "in %s", path)
}

// LoadUser runs the first config.lua found in the per-user or system config
// folders. It returns the path of the script, or "" when there is none.
func (c *Config) LoadUser() (string, error) {
	dirs := configdir.New(vendorName, appName)
	folder := dirs.QueryFolderContainsFile(ScriptName)
	if folder == nil {
		return "", nil
	}
	path := filepath.Join(folder.Path, ScriptName)
	data, err := folder.ReadFile(ScriptName)
	if err != nil {
		return path, errors.Wrap(err, "reading user config")
	}
	return path, c.LoadScript(path, string(data))
}

func (c *Config) fromGlobals(L *lua.LState) error {
	var err error
	setBool := func(name string, dst *bool) {
		switch v := L.GetGlobal(name).(type) {
		case *lua.LNilType:
		case lua.LBool:
			*dst = bool(v)
		default:
			if err == nil {
				err = errors.Errorf("%s must be a boolean, not %s", name, v.Type())
			}
		}
	}
	setInt := func(name string, dst *int) {
		switch v := L.GetGlobal(name).(type) {
		case *lua.LNilType:
		case lua.LNumber:
			*dst = int(v)
		default:
			if err == nil {
				err = errors.Errorf("%s must be a number, not %s", name, v.Type())
			}
		}
	}
	setString := func(name string, dst *string) {
		switch v := L.GetGlobal(name).(type) {
		case *lua.LNilType:
		case lua.LString:
			*dst = string(v)
		default:
			if err == nil {
				err = errors.Errorf("%s must be a string, not %s", name, v.Type())
			}
		}
	}

	setBool("show_alternate", &c.ShowAlternate)
	setBool("trust_comments", &c.TrustComments)
	setBool("markers", &c.Markers)
	setInt("column", &c.Column)
	setString("color", &c.Color)
	setInt("jobs", &c.Jobs)

	return err
}
