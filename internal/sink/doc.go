// Package sink delivers request records to their destinations.
//
// A sink receives one [record.Record] per handled request and decides what to
// do with it: keep it in a bounded window and log aggregates, append it to a
// CSV capture file, or fan it out to several destinations at once.
//
// # Window sink
//
// [WindowSink] is the default destination. It logs one line per request,
// buffers the most recent records in a fixed-capacity window, and every
// EmitEvery records logs an aggregate over the window:
//
//	win := sink.NewWindow(sink.WindowConfig{
//		Logger:    logger,
//		Level:     logrus.InfoLevel,
//		EmitEvery: 100,
//		Capacity:  10_000,
//	})
//
// The zero WindowConfig selects the defaults: Info level, an aggregate every
// 100 records, a window of 10 000 records, and the standard logger.
//
// # File sink
//
// [FileSink] appends one CSV row per record to a capture file, flushing after
// every row so the file stays complete even on a crash:
//
//	fs, err := sink.NewFile("capture.csv")
//	...
//	defer fs.Close()
//
// # Concurrency
//
// WindowSink is safe for concurrent use. FileSink is a single-writer type;
// wrap it with [Serialized] before sharing it across goroutines. [Multi]
// combines several sinks into one.
package sink
