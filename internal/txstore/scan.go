package txstore

import "database/sql"

// scanRows converts a *sql.Rows result into a slice of column-name maps,
// the gateway's generic row representation (§4.1's Query contract returns
// rows, not typed structs — typing happens one layer up in txregistry).
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = normalizeScanned(values[i])
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeScanned converts driver-returned []byte (the common
// representation for text/jsonb/numeric columns) to string, since callers
// expect string-or-native-scalar values, not raw bytes.
func normalizeScanned(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
