package config

import (
	"errors"
	"fmt"
)

var errConfigPathMissing = errors.New("LEDGER_CONFIG_PATH was not found")

func wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
