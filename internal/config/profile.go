// Package config loads named serial-link profiles (baud rate, retry
// budget, per-attempt timeout) from an INI file, the way an EDS file
// configures a CANopen object dictionary.
package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Profile bundles the link parameters a session needs to open.
type Profile struct {
	Name    string
	Baud    int
	Retries int
	Timeout time.Duration
}

func defaultProfile(name string) Profile {
	return Profile{Name: name, Baud: 115200, Retries: 3, Timeout: 3 * time.Second}
}

// LoadProfile reads section name from the INI file at path, falling
// back to built-in defaults for any key the section omits. An empty
// path returns the built-in defaults under name.
func LoadProfile(path, name string) (Profile, error) {
	profile := defaultProfile(name)
	if path == "" {
		return profile, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return Profile{}, fmt.Errorf("config: load %q: %v", path, err)
	}
	if !file.HasSection(name) {
		return Profile{}, fmt.Errorf("config: profile %q not found in %q", name, path)
	}
	section := file.Section(name)

	if key := section.Key("Baud"); key.String() != "" {
		v, err := key.Int()
		if err != nil {
			return Profile{}, fmt.Errorf("config: profile %q: invalid Baud: %v", name, err)
		}
		profile.Baud = v
	}
	if key := section.Key("Retries"); key.String() != "" {
		v, err := key.Int()
		if err != nil {
			return Profile{}, fmt.Errorf("config: profile %q: invalid Retries: %v", name, err)
		}
		profile.Retries = v
	}
	if key := section.Key("TimeoutMs"); key.String() != "" {
		v, err := key.Int()
		if err != nil {
			return Profile{}, fmt.Errorf("config: profile %q: invalid TimeoutMs: %v", name, err)
		}
		profile.Timeout = time.Duration(v) * time.Millisecond
	}

	log.Debugf("[CONFIG] loaded profile %q from %q: baud=%d retries=%d timeout=%v",
		name, path, profile.Baud, profile.Retries, profile.Timeout)
	return profile, nil
}

// Override replaces any field for which a non-zero CLI flag value was
// given, leaving the profile's own values otherwise.
func (p Profile) Override(baud, retries int, timeout time.Duration) Profile {
	if baud > 0 {
		p.Baud = baud
	}
	if retries > 0 {
		p.Retries = retries
	}
	if timeout > 0 {
		p.Timeout = timeout
	}
	return p
}
