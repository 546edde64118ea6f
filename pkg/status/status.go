/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

// Package status maps resource states reported by the API to what the console displays.
package status

import (
	"strings"
)

const (
	IconSuccess Icon = "success"
	IconError   Icon = "error"
	IconPending Icon = "pending"
	IconStopped Icon = "stopped"
	IconInfo    Icon = "info"
	IconWarning Icon = "warning"
)

type (
	Icon string

	Display struct {
		Icon  Icon   `json:"icon"`
		Label string `json:"label"`
	}
)

var table = map[string]Display{
	"ACTIVE":      {IconSuccess, "Active"},
	"CREATED":     {IconSuccess, "Created"},
	"COMPLETE":    {IconSuccess, "Complete"},
	"SUCCEEDED":   {IconSuccess, "Succeeded"},
	"GREEN":       {IconSuccess, "Green"},
	"VALID":       {IconSuccess, "Valid"},
	"ERROR":       {IconError, "Error"},
	"FAILED":      {IconError, "Failed"},
	"RED":         {IconError, "Red"},
	"INVALID":     {IconError, "Invalid"},
	"CREATING":    {IconPending, "Creating"},
	"UPDATING":    {IconPending, "Updating"},
	"DELETING":    {IconPending, "Deleting"},
	"INSTALLING":  {IconPending, "Installing"},
	"RUNNING":     {IconPending, "Running"},
	"VALIDATING":  {IconPending, "Validating"},
	"INACTIVE":    {IconStopped, "Inactive"},
	"STOPPED":     {IconStopped, "Stopped"},
	"DELETED":     {IconStopped, "Deleted"},
	"YELLOW":      {IconWarning, "Yellow"},
	"UNKNOWN":     {IconWarning, "Unknown"},
	"UNCHECKED":   {IconInfo, "Not checked"},
	"NOT_STARTED": {IconInfo, "Not started"},
}

// Lookup returns how s is displayed. Matching ignores case and surrounding spaces.
// Unknown states keep their text with the info icon.
func Lookup(s string) Display {
	key := strings.ToUpper(strings.TrimSpace(s))
	if d, ok := table[key]; ok {
		return d
	}
	return Display{Icon: IconInfo, Label: s}
}
