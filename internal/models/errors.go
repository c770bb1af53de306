package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	ErrProviderNameNotUnique = errors.New("the provider name must be unique")
	ErrFuelTypeNameNotUnique = errors.New("the fuel type name must be unique")
	ErrVehicleNumberNotUnique = errors.New("the vehicle registration number must be unique")
	ErrTemplateNameNotUnique  = errors.New("the template name must be unique for the provider")
)
