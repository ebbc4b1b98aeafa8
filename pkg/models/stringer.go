package models

// String methods for all custom string types.
// These are required for toon serialization, which uses fmt.Stringer.

// Category
func (c Category) String() string { return string(c) }

// Severity
func (s Severity) String() string { return string(s) }

// Grade
func (g Grade) String() string { return string(g) }

// RiskLevel
func (r RiskLevel) String() string { return string(r) }
