// Package file provides file-based implementations of driven port interfaces.
//
// ConfigStore keeps user settings in config.toml inside the conciliar
// home directory (~/.conciliar, or $CONCILIAR_HOME).
package file
