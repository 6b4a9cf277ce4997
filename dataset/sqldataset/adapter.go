package sqldataset

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"
)

/*
Adapter is an interface providing the methods needed to read and write
samples on a database backend.
*/
type Adapter interface {
	ColumnName(string) (string, error)

	CreateDiscreteValuesTable(ctx context.Context) error
	CreateSampleTable(ctx context.Context, discreteFeatureColumns, continuousFeatureColumns []string) error

	AddDiscreteValues(ctx context.Context, values []string) (int, error)
	ListDiscreteValues(ctx context.Context) (map[int]string, error)

	AddSamples(ctx context.Context, rawSamples []map[string]interface{}, discreteFeatureColumns, continuousFeatureColumns []string) (int, error)
	IterateOnSamples(ctx context.Context, discreteFeatureColumns, continuousFeatureColumns []string, lambda func(int, map[string]interface{}) (bool, error)) error

	Close() error
}

/*
Dialect describes what changes between the database engines supported by
DBAdapter: the statements to run when connecting, the column definition
of auto-incremented primary keys, and the placeholder for the i-th
(1-based) statement parameter.
*/
type Dialect struct {
	Init         []string
	SerialColumn string
	Placeholder  func(i int) string
}

/*
DBAdapter is an Adapter working over a database/sql connection. Engine
specific adapters wrap it with their Dialect.
*/
type DBAdapter struct {
	db      *sql.DB
	dialect Dialect
}

// NewDBAdapter takes a database connection and a dialect and returns a
// DBAdapter working on the database.
func NewDBAdapter(db *sql.DB, dialect Dialect) *DBAdapter {
	return &DBAdapter{db, dialect}
}

// ColumnName returns the name of the column for the feature with the given
// name, or an error if the name cannot be used as column.
func (a *DBAdapter) ColumnName(featureName string) (string, error) {
	if featureName == "id" {
		return "", fmt.Errorf(`'%s' is reserved and cannot be used as feature name`, featureName)
	}
	if strings.ContainsAny(featureName, `"`) {
		return "", fmt.Errorf(`feature name '%s' contains invalid character '"'`, featureName)
	}
	return featureName, nil
}

func (a *DBAdapter) init(ctx context.Context) error {
	for _, stmt := range a.dialect.Init {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running %q: %v", stmt, err)
		}
	}
	return nil
}

// CreateDiscreteValuesTable creates the discreteValues table unless it exists.
func (a *DBAdapter) CreateDiscreteValuesTable(ctx context.Context) error {
	if err := a.init(ctx); err != nil {
		return err
	}
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS discreteValues (
		id %s,
		value TEXT UNIQUE NOT NULL)`, a.dialect.SerialColumn)
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("running discreteValues creation statement: %v", err)
	}
	return nil
}

// CreateSampleTable creates the samples table with the given columns
// unless it exists.
func (a *DBAdapter) CreateSampleTable(ctx context.Context, discreteFeatureColumns, continuousFeatureColumns []string) error {
	var createStmtBuf bytes.Buffer
	createStmtBuf.WriteString("CREATE TABLE IF NOT EXISTS samples(")
	for _, c := range discreteFeatureColumns {
		createStmtBuf.WriteString(fmt.Sprintf(`"%s" INTEGER NULL REFERENCES discreteValues(id), `, c))
	}
	for _, c := range continuousFeatureColumns {
		createStmtBuf.WriteString(fmt.Sprintf(`"%s" REAL NULL, `, c))
	}
	createStmtBuf.WriteString(fmt.Sprintf(`"id" %s)`, a.dialect.SerialColumn))
	if _, err := a.db.ExecContext(ctx, createStmtBuf.String()); err != nil {
		return fmt.Errorf("ensuring samples table exists: %v", err)
	}
	return nil
}

// AddDiscreteValues adds the given values to the discreteValues table,
// skipping those already in it, and returns the number of values added.
func (a *DBAdapter) AddDiscreteValues(ctx context.Context, values []string) (int, error) {
	existing, err := a.ListDiscreteValues(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(existing))
	for _, v := range existing {
		known[v] = true
	}
	stmt := fmt.Sprintf("INSERT INTO discreteValues (value) VALUES (%s)", a.dialect.Placeholder(1))
	var added int
	for _, v := range values {
		if known[v] {
			continue
		}
		if _, err = a.db.ExecContext(ctx, stmt, v); err != nil {
			return added, fmt.Errorf("inserting discrete value %q: %v", v, err)
		}
		known[v] = true
		added++
	}
	return added, nil
}

// ListDiscreteValues returns the values in the discreteValues table by id.
func (a *DBAdapter) ListDiscreteValues(ctx context.Context) (map[int]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT id, value FROM discreteValues`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[int]string)
	for rows.Next() {
		var id int
		var value string
		if err = rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		result[id] = value
	}
	return result, rows.Err()
}

/*
AddSamples inserts the given raw samples, maps of column names to values,
in a single transaction and returns the number of samples inserted.
Missing values are stored as NULL.
*/
func (a *DBAdapter) AddSamples(ctx context.Context, rawSamples []map[string]interface{}, discreteFeatureColumns, continuousFeatureColumns []string) (int, error) {
	if len(rawSamples) == 0 {
		return 0, nil
	}
	columns := append(append([]string{}, discreteFeatureColumns...), continuousFeatureColumns...)
	if len(columns) == 0 {
		return 0, fmt.Errorf("no features to store")
	}
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = a.dialect.Placeholder(i + 1)
	}
	stmt := fmt.Sprintf(`INSERT INTO samples ("%s") VALUES (%s)`, strings.Join(columns, `", "`), strings.Join(placeholders, ", "))
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	insertStmt, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("preparing samples insert statement: %v", err)
	}
	defer insertStmt.Close()
	for n, rs := range rawSamples {
		values := make([]interface{}, len(columns))
		for i, c := range columns {
			values[i] = rs[c]
		}
		if _, err = insertStmt.ExecContext(ctx, values...); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("inserting sample %d: %v", n, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return len(rawSamples), nil
}

/*
IterateOnSamples queries the given columns of the samples table and calls
lambda with the index and the values of each row, keyed by column. NULL
values are left out. Discrete values are returned as their int ids.
Iteration stops when lambda returns false or an error.
*/
func (a *DBAdapter) IterateOnSamples(ctx context.Context, discreteFeatureColumns, continuousFeatureColumns []string, lambda func(int, map[string]interface{}) (bool, error)) error {
	columns := append(append([]string{}, discreteFeatureColumns...), continuousFeatureColumns...)
	query := fmt.Sprintf(`SELECT "%s" FROM samples ORDER BY "id"`, strings.Join(columns, `", "`))
	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for j := 0; rows.Next(); j++ {
		rawSample := make(map[string]interface{})
		discreteValues := make([]sql.NullInt64, len(discreteFeatureColumns))
		continuousValues := make([]sql.NullFloat64, len(continuousFeatureColumns))
		values := make([]interface{}, 0, len(columns))
		for i := range discreteValues {
			values = append(values, &discreteValues[i])
		}
		for i := range continuousValues {
			values = append(values, &continuousValues[i])
		}
		if err = rows.Scan(values...); err != nil {
			return err
		}
		for i, c := range discreteFeatureColumns {
			if discreteValues[i].Valid {
				rawSample[c] = int(discreteValues[i].Int64)
			}
		}
		for i, c := range continuousFeatureColumns {
			if continuousValues[i].Valid {
				rawSample[c] = continuousValues[i].Float64
			}
		}
		ok, err := lambda(j, rawSample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return rows.Err()
}

// Close closes the database connection.
func (a *DBAdapter) Close() error {
	return a.db.Close()
}
