// Package config manages fcmm configuration and state persistence.
//
// It handles:
//   - Tool settings (fcmm.yaml and FCMM_* environment variables)
//   - The .fcmm4git metadata file committed at the root of every fcmm repository
package config
