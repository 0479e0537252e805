// internal/workers/emergency/select-guidance/replies.go
package selectguidance

import (
	"fmt"
	"math"
	"strings"

	"emergency-workers/internal/emergency/classifier"
	"emergency-workers/internal/emergency/escalation"
	"emergency-workers/internal/models"
)

var builtinGuidance = map[string]models.Guideline{
	"medical": {
		DisasterType:   "medical",
		Keywords:       []string{"bleeding", "unconscious", "chest pain"},
		EmergencyLevel: "high",
		GuidanceText: "1. Call 108 for an ambulance.\n" +
			"2. Check breathing and keep the airway clear.\n" +
			"3. Apply firm pressure to any bleeding.\n" +
			"4. Do not give food or water; keep the person still and warm.",
	},
	"fire": {
		DisasterType:   "fire",
		Keywords:       []string{"fire", "smoke", "gas leak"},
		EmergencyLevel: "critical",
		GuidanceText: "1. Leave the building now by the nearest stairs, never the lift.\n" +
			"2. Stay low under smoke and cover your nose and mouth.\n" +
			"3. Feel doors before opening; do not open a hot door.\n" +
			"4. Call 101 once you are outside and do not go back in.",
	},
	"earthquake": {
		DisasterType:   "earthquake",
		Keywords:       []string{"earthquake", "trapped", "aftershock"},
		EmergencyLevel: "critical",
		GuidanceText: "1. Drop, cover and hold on until the shaking stops.\n" +
			"2. Stay away from windows and heavy furniture.\n" +
			"3. If trapped, tap on pipes or walls and conserve your phone battery.\n" +
			"4. Expect aftershocks; move to open ground when safe.",
	},
	"flood": {
		DisasterType:   "flood",
		Keywords:       []string{"flood", "rising water", "drowning"},
		EmergencyLevel: "high",
		GuidanceText: "1. Move to higher ground immediately.\n" +
			"2. Do not walk or drive through moving water.\n" +
			"3. Switch off electricity at the mains if it is safe to do so.\n" +
			"4. Signal rescuers from a roof or upper floor if you are cut off.",
	},
	"cyclone": {
		DisasterType:   "cyclone",
		Keywords:       []string{"cyclone", "storm", "hurricane"},
		EmergencyLevel: "high",
		GuidanceText: "1. Shelter in an interior room away from windows.\n" +
			"2. Keep a radio, torch and water within reach.\n" +
			"3. Do not go outside during the calm eye of the storm.\n" +
			"4. Avoid fallen power lines after the storm passes.",
	},
	"crime": {
		DisasterType:   "crime",
		Keywords:       []string{"assault", "robbery", "break in"},
		EmergencyLevel: "high",
		GuidanceText: "1. Get to a safe, public place if you can.\n" +
			"2. Call 100 and describe your location and the people involved.\n" +
			"3. Do not confront the attacker.\n" +
			"4. Preserve evidence and note descriptions once you are safe.",
	},
	"distress": {
		DisasterType:   "distress",
		Keywords:       []string{"help", "emergency", "sos"},
		EmergencyLevel: "critical",
		GuidanceText: "1. Call 112 now.\n" +
			"2. Share your location with your emergency contacts.\n" +
			"3. Stay where responders can reach you and keep your phone on.\n" +
			"4. Describe what is happening as clearly as you can.",
	},
}

// BuiltinGuidance returns fallback guidance for category, defaulting to the
// general distress protocol.
func BuiltinGuidance(category string) models.Guideline {
	if g, ok := builtinGuidance[category]; ok {
		return g
	}
	g := builtinGuidance["distress"]
	g.DisasterType = category
	return g
}

func emergencyReply(g models.Guideline, r classifier.Result) string {
	urgency := escalation.UrgencyLabel(r.Severity)
	if urgency == "" {
		urgency = "LOW"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s EMERGENCY DETECTED\n\n", urgency)
	fmt.Fprintf(&b, "Emergency type: %s\n", g.DisasterType)
	fmt.Fprintf(&b, "Confidence: %d%%\n\n", int(math.Round(r.Confidence*10)))
	b.WriteString("IMMEDIATE ACTIONS:\n")
	b.WriteString(g.GuidanceText)
	b.WriteString("\n\nEMERGENCY NUMBERS:\n")
	fmt.Fprintf(&b, "- All emergencies: %s\n", escalation.NumberAllEmergencies)
	fmt.Fprintf(&b, "- Police: %s\n", escalation.NumberPolice)
	fmt.Fprintf(&b, "- Fire: %s\n", escalation.NumberFire)
	fmt.Fprintf(&b, "- Medical: %s\n", escalation.NumberMedical)
	fmt.Fprintf(&b, "Recommended line: %s\n\n", escalation.EmergencyNumber(r.Category))
	b.WriteString("Say \"share location\" to send your coordinates, or \"contact help\" to alert your emergency contacts.")
	return b.String()
}

var topicReplies = map[string]string{
	TopicHospital: "Finding nearby medical facilities.\n\n" +
		"1. If this is a medical emergency call 108 rather than travelling yourself.\n" +
		"2. Share your location with your emergency contacts.\n" +
		"3. Government hospitals usually run 24/7 emergency wards.",
	TopicPolice: "Call 100 for police assistance.\n\n" +
		"1. Move to a safe location if possible.\n" +
		"2. Stay on the line and describe where you are.\n" +
		"3. Share your location with trusted contacts.",
	TopicHelp: "I can help with emergencies.\n\n" +
		"- Medical: 108\n- Fire: 101\n- Police: 100\n- All emergencies: 112\n\n" +
		"I can also find nearby hospitals, share your location and alert your emergency contacts. " +
		"What is happening right now?",
	TopicImage: "Send a photo of the scene and it will be tagged with your location " +
		"and forwarded to your emergency contacts.",
	TopicLocation: "Your location will be shared with emergency services and your registered contacts. " +
		"Say \"share location\" to send it now.",
	TopicGreeting: "Emergency assistant ready.\n\n" +
		"Describe your situation, for example:\n" +
		"- \"Help, I'm having chest pain\"\n" +
		"- \"There's a fire in my building\"\n" +
		"- \"I'm trapped after an earthquake\"\n" +
		"- \"Find nearby hospitals\"\n" +
		"- \"Share my location\"",
}

var topicRules = []struct {
	topic string
	words []string
}{
	{TopicHospital, []string{"hospital", "medical center"}},
	{TopicPolice, []string{"police", "crime", "safety"}},
	{TopicHelp, []string{"help", "assistance", "support"}},
	{TopicImage, []string{"image", "photo", "picture"}},
	{TopicLocation, []string{"location", "gps", "coordinates"}},
}

// topicFor picks the reply topic for non-emergency text; the first rule with
// any matching word wins.
func topicFor(text, imageURL string) string {
	lower := strings.ToLower(text)
	for _, r := range topicRules {
		for _, w := range r.words {
			if strings.Contains(lower, w) {
				return r.topic
			}
		}
	}
	if imageURL != "" {
		return TopicImage
	}
	return TopicGreeting
}
