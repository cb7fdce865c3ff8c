package clickhouse

import "fmt"

// SalesTable is the fully qualified sales history table of database.
func SalesTable(database string) string {
	return database + ".sales_history"
}

// SalesSchema returns the DDL for the sales history store.
func SalesSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			item_id   Int64,
			item_name String,
			sale_date Date,
			quantity  UInt32,
			revenue   Float64,
			remaining Nullable(Int32),
			seq       UInt64,
			inserted_at DateTime64(3) DEFAULT now64(3)
		) ENGINE = MergeTree
		ORDER BY (item_id, sale_date, seq)`, SalesTable(database)),
	}
}
