package service

import "errors"

var (
	ErrItemNotFound        = errors.New("butir tidak ditemukan")
	ErrTemplateMissing     = errors.New("butir belum memiliki form_config")
	ErrInvalidFieldName    = errors.New("nama field tidak valid")
	ErrColumnPoolExhausted = errors.New("kolom generik habis, maksimal 30 field per butir")
	ErrMappingConflict     = errors.New("mapping bentrok dengan perubahan lain, silakan ulangi")
)
