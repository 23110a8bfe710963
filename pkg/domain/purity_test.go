package domain_test

import (
	"testing"

	"fedstore/testutil"
)

// The canonical record shapes are imported by every adapter and by external
// consumers; they must stay free of backend and framework dependencies.
func TestDomainImportsOnlyStdlib(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.NonStdlibImportForbidden,
		"canonical types must not pull in backend dependencies")
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"canonical types sit below every internal package")
}
