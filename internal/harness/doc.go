// Package harness runs formula checks against a transition system.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: flipbit
//	description: "flip-bit checks"
//	system: systems/flipbit.cue   # relative to the scenario file
//	system_name: flipbit          # optional if the file defines one system
//	backend: sqlite               # sqlite (default) or memory
//	pushdown: false               # evaluate each formula as one query
//	checks:
//	  - name: b1 holds in state 1
//	    state: 1
//	    formula: 'b("1")'
//	    expect: true
//	  - name: only state 1 has b1
//	    formula: 'b("1")'
//	    expect_states: [1]
//
// A check either pins a formula to one state and expects a truth value,
// or evaluates it at every stored state and expects the satisfying ids
// in ascending order.
//
// # Isolation
//
// Every Run compiles the system, validates it and loads it into a fresh
// store (in-memory SQLite or store.Memory), so scenarios never share
// state. Results are deterministic and suitable for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/flipbit.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
