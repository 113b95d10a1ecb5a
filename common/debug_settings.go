// Copyright (c) 2019, AT&T Intellectual Property.
// All rights reserved.
//
// SPDX-License-Identifier: LGPL-2.1-only
package common

import (
	"github.com/go-ini/ini"
)

// LoadDebugSettingsFile reads a configd debug-settings file (key=value per
// section, as cmd/yangc's ini.Load(file) reads its *.ini plugin manifests)
// and applies every recognised "logtype = level" pair via SetConfigDebug.
// Unrecognised keys are ignored rather than rejected outright, since a
// settings file shared across configd subsystems may list types this
// binary doesn't know about.
func LoadDebugSettingsFile(path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return err
	}
	section := f.Section("")
	for _, key := range section.Keys() {
		if _, typeErr := MapLogNameToType(key.Name()); typeErr != nil {
			continue
		}
		if _, err := SetConfigDebug(key.Name(), key.Value()); err != nil {
			return err
		}
	}
	return nil
}
