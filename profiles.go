// Copyright (c) 2020 Siemens AG
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
//
// Author(s): Jonas Plum

package browsercollect

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// Profile points at one discovered browser profile of one user.
type Profile struct {
	Browser Browser
	User    string
	Name    string // display name from profiles.ini, empty for Chromium profiles
	Path    string // absolute source path of the profile directory
}

var chromiumProfileDirs = map[Browser]string{
	Chrome: filepath.Join("AppData", "Local", "Google", "Chrome", "User Data", "Default"),
	Edge:   filepath.Join("AppData", "Local", "Microsoft", "Edge", "User Data", "Default"),
	Brave:  filepath.Join("AppData", "Local", "BraveSoftware", "Brave-Browser", "User Data", "Default"),
}

var firefoxDir = filepath.Join("AppData", "Roaming", "Mozilla", "Firefox")

// Locator discovers user accounts and browser profiles below a users root.
type Locator struct {
	Fs  afero.Fs
	Log zerolog.Logger
}

// EnumerateUsers lists the user directories below usersRoot. An
// unreadable root is not fatal, it is logged and yields zero users.
func (l *Locator) EnumerateUsers(usersRoot string) []string {
	infos, err := afero.ReadDir(l.Fs, usersRoot)
	if err != nil {
		l.Log.Warn().Err(err).Str("path", usersRoot).Msg("users root not readable")
		return nil
	}
	var users []string
	for _, info := range infos {
		if info.IsDir() {
			users = append(users, info.Name())
		}
	}
	return users
}

// ResolveProfiles finds the profiles of one browser for one user. A
// browser that is not installed for the user yields zero profiles, which
// is a normal case, not an error. Chromium browsers have at most one
// profile (User Data/Default), Firefox has zero or more named profiles.
func (l *Locator) ResolveProfiles(usersRoot, user string, browser Browser) []Profile {
	home := filepath.Join(usersRoot, user)
	if browser == Firefox {
		return l.firefoxProfiles(home, user)
	}

	profilePath := filepath.Join(home, chromiumProfileDirs[browser])
	ok, err := afero.DirExists(l.Fs, profilePath)
	if err != nil || !ok {
		return nil
	}
	return []Profile{{Browser: browser, User: user, Path: profilePath}}
}

func (l *Locator) firefoxProfiles(home, user string) []Profile {
	root := filepath.Join(home, firefoxDir)
	profilesDir := filepath.Join(root, "Profiles")
	infos, err := afero.ReadDir(l.Fs, profilesDir)
	if err != nil {
		return nil
	}

	names := l.firefoxProfileNames(root)

	var profiles []Profile
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		profiles = append(profiles, Profile{
			Browser: Firefox,
			User:    user,
			Name:    names[info.Name()],
			Path:    filepath.Join(profilesDir, info.Name()),
		})
	}
	return profiles
}

// firefoxProfileNames maps profile directory names to the display names
// declared in profiles.ini. The directory listing stays authoritative,
// profiles.ini only annotates it.
func (l *Locator) firefoxProfileNames(root string) map[string]string {
	content, err := afero.ReadFile(l.Fs, filepath.Join(root, "profiles.ini"))
	if err != nil {
		return nil
	}
	file, err := ini.Load(content)
	if err != nil {
		l.Log.Debug().Err(err).Msg("could not parse profiles.ini")
		return nil
	}

	names := map[string]string{}
	for _, section := range file.Sections() {
		if !strings.HasPrefix(section.Name(), "Profile") {
			continue
		}
		profilePath := section.Key("Path").String()
		if profilePath == "" {
			continue
		}
		names[path.Base(filepath.ToSlash(profilePath))] = section.Key("Name").String()
	}
	return names
}
