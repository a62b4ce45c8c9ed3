package datasizes

const (
	KiloByte = 1000                             // kB
	KibiByte = 1024                             // KiB
	MegaByte = 1000 * 1000                      // MB
	MebiByte = 1024 * 1024                      // MiB
	GigaByte = 1000 * 1000 * 1000               // GB
	GibiByte = 1024 * 1024 * 1024               // GiB
	TeraByte = 1000 * 1000 * 1000 * 1000        // TB
	TebiByte = 1024 * 1024 * 1024 * 1024        // TiB
	PetaByte = 1000 * 1000 * 1000 * 1000 * 1000 // PB
	PebiByte = 1024 * 1024 * 1024 * 1024 * 1024 // PiB

	// shorthands
	KiB = KibiByte
	MB  = MegaByte
	MiB = MebiByte
	GB  = GigaByte
	GiB = GibiByte
	TiB = TebiByte
	PiB = PebiByte
)
