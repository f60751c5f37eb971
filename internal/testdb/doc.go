// Package testdb provides helpers for database integration tests.
//
// Tests run inside a transaction that is rolled back when the test ends, so
// they can share one database and run in parallel:
//
//	func TestSomething(t *testing.T) {
//	    db := testdb.GetTestDBWithT(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        users := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)
//	        ...
//	    })
//	}
//
// GetTestDBWithT skips the test when no database URL is configured. The URL
// is read from DATABASE_URL, then ACADEMY_TEST_DB_URL, then
// ACADEMY_DATABASE_URL.
package testdb
