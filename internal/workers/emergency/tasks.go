// Package emergency lists the job workers of the emergency response process.
package emergency

import (
	classifyutterance "emergency-workers/internal/workers/emergency/classify-utterance"
	dispatchemergencycall "emergency-workers/internal/workers/emergency/dispatch-emergency-call"
	notifycontacts "emergency-workers/internal/workers/emergency/notify-contacts"
	recordinteraction "emergency-workers/internal/workers/emergency/record-interaction"
	selectguidance "emergency-workers/internal/workers/emergency/select-guidance"
	verifycontact "emergency-workers/internal/workers/emergency/verify-contact"
)

// TaskTypes is every task type the worker manager registers, in process order.
var TaskTypes = []string{
	classifyutterance.TaskType,
	selectguidance.TaskType,
	notifycontacts.TaskType,
	dispatchemergencycall.TaskType,
	recordinteraction.TaskType,
	verifycontact.TaskType,
}
