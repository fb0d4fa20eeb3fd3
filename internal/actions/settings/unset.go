package settings

import (
	"fmt"
	"io"

	"github.com/footprint-tools/mach/internal/domain"
	"github.com/footprint-tools/mach/internal/usage"
)

func unset(w io.Writer, key string, deps Deps) error {
	if _, ok := deps.Store.Declared(key); !ok && !domain.IsAliasKey(key) {
		return usage.InvalidSettingKey(key)
	}

	if err := deps.Store.Unset(key); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "unset %s\n", key)
	return err
}
