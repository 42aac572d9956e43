// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jcodagnone/gpxmaps/convert"
)

var registerOnce = sync.OnceValue(func() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	// report fields by their form name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	return v.RegisterValidation("vehicletype", func(fl validator.FieldLevel) bool {
		_, err := convert.ParseVehicleType(fl.Field().String())

		return err == nil
	})
})

// RegisterValidators installs the custom binding rules. It is safe to call
// more than once.
func RegisterValidators() error {
	return registerOnce()
}
