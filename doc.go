// Package shipcheck validates delivery scripts across the platforms they
// will ship to.
//
// It executes batch, PowerShell, shell and Python scripts on Windows, WSL
// and Linux through a unified adapter API, with bounded execution (a fixed
// per-script timeout that kills the whole process tree), resource
// observation (duration, peak memory, truncated output capture) and
// crash-safe rollback: files a script may damage are snapshotted before the
// run and restored byte-for-byte when the run fails, panics, or the process
// is interrupted.
//
// Basic usage:
//
//	cfg := shipcheck.DefaultConfig()
//	runner, err := shipcheck.NewRunner(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer runner.Close()
//
//	script, err := shipcheck.NewScript("deploy.sh")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, v := range runner.ValidateScript(ctx, script) {
//	    fmt.Println(v.Platform, v.Passed())
//	}
package shipcheck
