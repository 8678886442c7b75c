package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout StrainMap and its
	associated services.
*/
type MetadataRole string

type ResourceType string

type LoincCode string
