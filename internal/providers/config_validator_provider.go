package providers

import (
	"fmt"
	"varietyd/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}

	if t := cv.conf.Snapshot.VarietyThreshold; t < 0 || t > 1 {
		return fmt.Errorf("invalid config: snapshot.varietyThreshold must be within [0, 1], got %v", t)
	}
	if cv.conf.Snapshot.BulkConcurrency < 0 {
		return fmt.Errorf("invalid config: snapshot.bulkConcurrency must not be negative")
	}
	return nil
}
