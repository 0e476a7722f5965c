// Copyright (C) 2026 Capi AI (dev@capiai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

// Agent identifiers for the specialist components a decision may target.
// The classifier never emits a target outside this set.
const (
	AgentGus      = "capi_gus"      // conversational fallback, greetings, small talk
	AgentDatab    = "capi_datab"    // database and branch queries, anomaly detection
	AgentDesktop  = "capi_desktop"  // local file operations and summaries
	AgentNoticias = "capi_noticias" // news monitoring
	AgentGoogle   = "capi_google"   // Gmail, Drive, Calendar
)

// FallbackAgent receives anything that cannot be routed more precisely.
const FallbackAgent = AgentGus

var validAgents = map[string]struct{}{
	AgentGus:      {},
	AgentDatab:    {},
	AgentDesktop:  {},
	AgentNoticias: {},
	AgentGoogle:   {},
}

// defaultAgent maps every intent to the specialist that handles it when
// no valid agent was suggested.
var defaultAgent = map[Intent]string{
	Unknown:        AgentGus,
	Greeting:       AgentGus,
	SmallTalk:      AgentGus,
	Summary:        AgentDesktop,
	SummaryRequest: AgentDesktop,
	Branch:         AgentDatab,
	BranchQuery:    AgentDatab,
	Anomaly:        AgentDatab,
	AnomalyQuery:   AgentDatab,
	DBOperation:    AgentDatab,
	FileOperation:  AgentDesktop,
	NewsMonitoring: AgentNoticias,
	GoogleWork:     AgentGoogle,
	GoogleGmail:    AgentGoogle,
	GoogleDrive:    AgentGoogle,
	GoogleCalendar: AgentGoogle,
}

// ValidAgent reports whether name is in the closed agent allow-list.
func ValidAgent(name string) bool {
	_, ok := validAgents[name]
	return ok
}

// Agents returns every valid agent name in a stable order.
func Agents() []string {
	return []string{AgentGus, AgentDatab, AgentDesktop, AgentNoticias, AgentGoogle}
}

// DefaultAgentFor returns the default specialist for an intent. Intents
// outside the mapping resolve to the fallback agent.
func DefaultAgentFor(in Intent) string {
	if agent, ok := defaultAgent[in]; ok {
		return agent
	}
	return FallbackAgent
}

// ResolveAgent accepts suggested only when it is in the allow-list;
// otherwise it substitutes the intent's default agent.
func ResolveAgent(suggested string, in Intent) string {
	if ValidAgent(suggested) {
		return suggested
	}
	return DefaultAgentFor(in)
}
