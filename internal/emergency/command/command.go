// Package command routes voice transcripts to client-side actions such as
// sharing the location or opening the dialer.
package command

import "strings"

type Command string

const (
	None                  Command = "none"
	FindHospitals         Command = "find_hospitals"
	FindRestaurants       Command = "find_restaurants"
	FindPolice            Command = "find_police"
	ShowEmergencyContacts Command = "show_emergency_contacts"
	CallEmergency         Command = "call_emergency"
	ShareLocation         Command = "share_location"
	AlertContacts         Command = "alert_contacts"
)

type rule struct {
	all []string
	cmd Command
}

// Evaluated in order; the first rule whose words all appear wins.
var rules = []rule{
	{[]string{"find", "hospital"}, FindHospitals},
	{[]string{"find", "restaurant"}, FindRestaurants},
	{[]string{"find", "police"}, FindPolice},
	{[]string{"emergency", "contact"}, ShowEmergencyContacts},
	{[]string{"call", "emergency"}, CallEmergency},
	{[]string{"share", "location"}, ShareLocation},
	{[]string{"contact", "help"}, AlertContacts},
}

func Parse(text string) Command {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if containsAll(lower, r.all) {
			return r.cmd
		}
	}
	return None
}

func containsAll(s string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
