package whereclause

// Filter is the caller-facing query filter map; Build translates it into the
// fixed clause set the allowlist in clause.go recognizes (§4.4).
type Filter struct {
	TransactionID *string
	CustomerUID   *string
	Owner         *string
	OrderType     *string
	Status        *string
	CreatedAfter  *string // ISO-8601 lower bound, inclusive
	CreatedBefore *string // ISO-8601 upper bound, inclusive
}

// Build renders a Filter into the ordered clause list Compile expects.
// is_deleted = false is always first and unconditional (§3 invariant I5).
func Build(f Filter) []Clause {
	clauses := []Clause{{SQL: "is_deleted = false"}}

	if f.TransactionID != nil {
		clauses = append(clauses, Clause{SQL: "transaction_id = $1", Arg: *f.TransactionID})
	}
	if f.CustomerUID != nil {
		clauses = append(clauses, Clause{SQL: "customer_uid = $1", Arg: *f.CustomerUID})
	}
	if f.Owner != nil {
		clauses = append(clauses, Clause{SQL: "owners @> $1", Arg: *f.Owner})
	}
	if f.OrderType != nil {
		clauses = append(clauses, Clause{SQL: "order_type = $1", Arg: *f.OrderType})
	}
	if f.Status != nil {
		clauses = append(clauses, Clause{SQL: "status = $1", Arg: *f.Status})
	}
	if f.CreatedAfter != nil {
		clauses = append(clauses, Clause{SQL: "created_at >= $1", Arg: *f.CreatedAfter})
	}
	if f.CreatedBefore != nil {
		clauses = append(clauses, Clause{SQL: "created_at <= $1", Arg: *f.CreatedBefore})
	}

	return clauses
}
