/*
Package workers determines worker pool sizes for the media pipeline in
containerized environments.

In containers the number of available CPUs may be limited by cgroup
constraints. Go 1.19+ sets GOMAXPROCS from the container CPU limit, but
runtime.NumCPU() still reports the host machine's count, so sizing pools
from NumCPU oversubscribes a limited pod. The helpers here size from
GOMAXPROCS instead.

	// For CPU-intensive work (image decode/resize/encode)
	numWorkers := workers.ForCPU(8)

	// For I/O-bound work (spooling uploads to disk)
	numWorkers := workers.ForIO(16)

	// For mixed workloads (the variant pipeline: read, resize, write)
	numWorkers := workers.ForMixed(12)

All functions respect the UPLOAD_WORKERS environment variable, letting
operators pin the concurrency of multi-file uploads:

	env:
	- name: UPLOAD_WORKERS
	  value: "4"
*/
package workers
