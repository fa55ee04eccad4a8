package sim

import "fmt"

// Seed loads a small three-tier demo topology, including a relationship
// cycle between the application and its monitoring agent so traversal
// cycle-safety is visible in demos.
func Seed(s *Store) error {
	var firstErr error
	addCI := func(name, class string) CI {
		ci, err := s.AddCI(name, class)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return ci
	}
	addRel := func(parent, child CI, label string) {
		if _, err := s.AddRel(parent.SysID, child.SysID, label); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	lb := addCI("lb-01", "cmdb_ci_lb")
	web1 := addCI("web-01", "cmdb_ci_linux_server")
	web2 := addCI("web-02", "cmdb_ci_linux_server")
	app := addCI("app-svc", "cmdb_ci_appl")
	db := addCI("db-01", "cmdb_ci_db_instance")
	mon := addCI("monitor-01", "cmdb_ci_appl")

	addRel(lb, web1, "Depends on::Used by")
	addRel(lb, web2, "Depends on::Used by")
	addRel(app, web1, "Runs on::Runs")
	addRel(app, web2, "Runs on::Runs")
	addRel(app, db, "Depends on::Used by")
	addRel(mon, app, "Monitors::Monitored by")
	addRel(app, mon, "Depends on::Used by")

	if firstErr != nil {
		return fmt.Errorf("seeding store: %w", firstErr)
	}
	return nil
}
