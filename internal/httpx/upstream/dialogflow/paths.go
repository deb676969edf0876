package dialogflow

import "fmt"

// Endpoint returns the regional API endpoint, or "" for the global one
func Endpoint(location string) string {
	if location == "" || location == defaultLocation {
		return ""
	}
	return fmt.Sprintf("%s-dialogflow.googleapis.com:%d", location, endpointPort)
}

// AgentPath returns the agent resource name for a project and location
func AgentPath(projectID, location string) string {
	if location == "" || location == defaultLocation {
		return fmt.Sprintf("projects/%s/agent", projectID)
	}
	return fmt.Sprintf("projects/%s/locations/%s/agent", projectID, location)
}

// IntentPath returns the fully-qualified name of an intent
func IntentPath(projectID, location, id string) string {
	return AgentPath(projectID, location) + "/intents/" + id
}

// SessionPath returns the fully-qualified name of a conversation session
func SessionPath(projectID, location, sessionID string) string {
	return AgentPath(projectID, location) + "/sessions/" + sessionID
}
