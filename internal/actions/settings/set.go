package settings

import (
	"fmt"
	"io"

	"github.com/footprint-tools/mach/internal/dispatchers"
	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/usage"
)

func set(w io.Writer, key, value string, deps Deps) error {
	if err := deps.Store.Set(key, value); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "set %s=%s\n", key, value)
	return err
}

// promptValue asks for the value of key, offering its current value.
// Without a terminal the value is a required argument.
func promptValue(inst *dispatchers.Instance, key string, deps Deps) (string, error) {
	if !inst.Interactive() {
		return "", usage.MissingArgument("settings set", "value")
	}
	if _, ok := deps.Store.Declared(key); !ok && !domain.IsAliasKey(key) {
		return "", usage.InvalidSettingKey(key)
	}

	current, _ := deps.Store.Get(key)
	return deps.asker(true, inst.Stdin(), inst.Stderr()).Ask(fmt.Sprintf("Value for %s?", key), current)
}
