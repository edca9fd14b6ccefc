/*
Command goapflow runs the planning core from the command line.

	goapflow run                        # run the demo pipeline end to end
	goapflow run --config config.yaml   # with a config file
	goapflow plan                       # print the plans without executing
	goapflow version                    # show version information

The run command executes a document-drafting pipeline: gather sources,
outline, draft through a bounded revise loop, then publish. It wires the
configured logger, telemetry, metrics endpoint, and snapshot store, so
it doubles as a smoke test for a deployment's configuration.
*/
package main
