package billing

// Cents is an amount of money in the smallest currency unit. All billing
// arithmetic is integer-only; formatting into BRL strings is a presentation
// concern and lives with the handlers.
type Cents = int64
