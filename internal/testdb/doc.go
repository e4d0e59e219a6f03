// Package testdb provides helpers for tests that need a PostgreSQL database.
//
// Tests run against the database named by SLIDESCRY_TEST_DB_URL and are
// skipped when it is unset. Each test works inside a transaction that is
// rolled back when the test ends, so tests never see each other's data and
// need no cleanup.
//
//	func TestContentStore(t *testing.T) {
//	    db := testdb.Open(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        s := postgres.NewPostgresContentStore(tx, nil)
//	        ...
//	    })
//	}
package testdb
