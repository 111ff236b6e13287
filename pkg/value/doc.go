// Package value resolves per-request field values.
//
// Form values follow repopulation semantics: the previous submission wins,
// then the stored record value (formatted by the field kind), then the
// declared default, then "" for nullable fields. Request values, used when
// persisting, prefer the current submission, then the default, then the
// previous submission; a field with none of these is reported absent and must
// not be written.
//
// Resolution reads only its inputs. Resolved values are request-local and
// never cached on the field.
package value
