package db

import "fmt"

// Dump prints every stored key and its value, for the debug CLI.
func Dump(dbPath string) error {
	store, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	keys, err := store.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		v, err := store.Get(k)
		if err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", k, v)
	}
	return nil
}
