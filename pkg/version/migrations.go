package version

import "github.com/clubworks/hookconf/pkg/types"

// builtinMigrations returns the migrations shipped with this build.
func builtinMigrations() []Migration {
	return []Migration{
		{
			FromVersion: "0.9.0",
			ToVersion:   "1.0.0",
			Description: "introduce caching and background job settings",
			Migrate:     migrateCachingAndJobs,
			Rollback:    rollbackCachingAndJobs,
		},
	}
}

// migrateCachingAndJobs adds the caching and background-job keys introduced
// in 1.0.0 with their default values, preserving any value the document
// already carries.
func migrateCachingAndJobs(doc types.Document) (types.Document, error) {
	global := ensureSection(doc, "global")
	setIfMissing(global, "enableCaching", true)
	setIfMissing(global, "cacheTimeout", 300)

	factory := ensureSection(doc, "factory")
	setIfMissing(factory, "enableBackgroundJobs", true)
	setIfMissing(factory, "jobQueueSize", 100)

	return doc, nil
}

func rollbackCachingAndJobs(doc types.Document) (types.Document, error) {
	if global, ok := doc["global"].(map[string]interface{}); ok {
		delete(global, "enableCaching")
		delete(global, "cacheTimeout")
	}
	if factory, ok := doc["factory"].(map[string]interface{}); ok {
		delete(factory, "enableBackgroundJobs")
		delete(factory, "jobQueueSize")
	}
	return doc, nil
}

func ensureSection(doc types.Document, key string) map[string]interface{} {
	if section, ok := doc[key].(map[string]interface{}); ok {
		return section
	}
	section := make(map[string]interface{})
	doc[key] = section
	return section
}

func setIfMissing(section map[string]interface{}, key string, value interface{}) {
	if _, exists := section[key]; !exists {
		section[key] = value
	}
}
