package services

import (
	"os"
)

// FeatureFlags holds the runtime toggles read from the environment at
// startup. Flags are fixed for the lifetime of the process.
type FeatureFlags struct {
	pushEventsEnabled          bool
	noShowNotificationsEnabled bool
}

// NewFeatureFlags reads the feature toggles from the environment. Push
// events are on unless explicitly disabled; no-show notifications are off
// unless explicitly enabled.
func NewFeatureFlags() *FeatureFlags {
	push := os.Getenv("FEATURE_PUSH_EVENTS") != "false"
	noShow := os.Getenv("FEATURE_NOSHOW_NOTIFICATIONS") == "true"

	return &FeatureFlags{
		pushEventsEnabled:          push,
		noShowNotificationsEnabled: noShow,
	}
}

// PushEventsEnabled reports whether real-time queue events are published
func (f *FeatureFlags) PushEventsEnabled() bool {
	return f.pushEventsEnabled
}

// NoShowNotificationsEnabled reports whether missed appointments trigger
// patient messages
func (f *FeatureFlags) NoShowNotificationsEnabled() bool {
	return f.noShowNotificationsEnabled
}
