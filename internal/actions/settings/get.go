package settings

import (
	"fmt"
	"io"

	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/usage"
)

func get(w io.Writer, key string, deps Deps) error {
	if _, ok := deps.Store.Declared(key); !ok && !domain.IsAliasKey(key) {
		return usage.InvalidSettingKey(key)
	}

	value, found := deps.Store.Get(key)
	if !found {
		return usage.InvalidSettingKey(key)
	}

	_, err := fmt.Fprintln(w, value)
	return err
}
