// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import "testing"

func TestCacheLogRecordsEntries(t *testing.T) {
	db := testDB(t)
	t.Cleanup(func() {
		db.Exec("DELETE FROM cache_invalidation_log WHERE action = 'cache-log-test'")
	})

	log := NewCacheLogStore(db)
	log.Log("record", 4242, "cache-log-test")
	log.Log("published_list", 4242, "cache-log-test")

	entries, err := log.RecentEntries(50)
	if err != nil {
		t.Fatalf("RecentEntries: %v", err)
	}

	var found int
	for _, e := range entries {
		if e.Action == "cache-log-test" && e.RecordID == 4242 {
			found++
			if e.InvalidatedAt.IsZero() {
				t.Error("invalidated_at not set")
			}
		}
	}
	if found != 2 {
		t.Errorf("found %d test entries, want 2", found)
	}
}
