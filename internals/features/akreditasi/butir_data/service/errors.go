package service

import "errors"

var (
	ErrRowNotFound      = errors.New("baris data tidak ditemukan")
	ErrInstanceNotFound = errors.New("pengisian butir tidak ditemukan")
	ErrFieldNotMapped   = errors.New("field belum dipetakan ke kolom")
	ErrInvalidOperator  = errors.New("operator filter tidak dikenal")
	ErrInvalidFilter    = errors.New("nilai filter tidak valid")
	ErrInvalidPayload   = errors.New("payload baris tidak valid")
)
