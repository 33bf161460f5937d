// Package mongo manages the MongoDB connection behind the Mongo-backed
// file record store.
//
// It wraps the official driver with environment-driven configuration,
// connect-time retries verified by a ping, and a healthcheck probe. The
// usual entry point is NewWithDatabase, whose result feeds
// filemeta.NewMongoStore:
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//	db, err := mongo.NewWithDatabase(ctx, cfg, "filekit")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store, err := filemeta.NewMongoStore(ctx, db.Collection("files"))
package mongo
