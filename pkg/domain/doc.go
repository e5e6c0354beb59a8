// Package domain contains the core types of the validator: the schema
// snapshot shared across requests, the document source a request submits and
// the validation result handed back to callers. They carry no transport or
// storage concerns so every layer can share them.
package domain
