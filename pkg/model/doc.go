// Package model defines the form template tree: a Template owns an ordered
// list of Pages and each Page owns an ordered list of Fields. Position inside
// those lists is the only identity a page or field has.
//
// A Field's validation payload is a tagged union keyed by its FieldType
// (TextValidation carries regex, NumberValidation carries min/max, choice and
// file fields carry none). Field.SetType resets validation, options and
// accept on every write so stale rules never survive a type change.
//
// Templates encode to the exported JSON document
// {"pages":[{"title":...,"fields":[{label,name,type,required,validation,options,accept}]}]}
// with every field key present, and decode from the same shape.
package model
