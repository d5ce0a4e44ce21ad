package main

import "unicode"

func isValidDeviceID(deviceID string) bool {
	if deviceID == "" || len(deviceID) > 64 {
		return false
	}

	for _, r := range deviceID {
		if r == '-' || r == '_' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}

	return true
}
