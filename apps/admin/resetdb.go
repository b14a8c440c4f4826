package main

import "context"

// resetDB wipes all data except superadmin users and rebuilds indexes.
func (cli *commandLine) resetDB() error {
	return cli.store.ResetData(context.Background())
}
