// Package normalisers provides the record adapters that project source
// tables into internal and insurer records. Each sub-package knows the
// column layout of one source format; the Registry selects them by format.
package normalisers
