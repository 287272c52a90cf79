//go:build android
// +build android

package main

import _ "github.com/mtibben/androiddnsfix"
