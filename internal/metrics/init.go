package metrics

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	kinds := []string{"photo", "video"}
	statuses := []string{"success", "error"}

	for _, kind := range kinds {
		for _, status := range statuses {
			UploadsTotal.WithLabelValues(kind, status)
		}
		PipelineDuration.WithLabelValues(kind)
	}

	for _, variant := range []string{"original", "thumb", "medium", "large", "video"} {
		for _, kind := range kinds {
			VariantsGenerated.WithLabelValues(kind, variant)
		}
	}

	for _, op := range []string{"initialize_schema", "create_media", "get_media",
		"list_media", "update_media", "delete_media", "swap_sort_order",
		"create_user", "validate_password", "create_session", "validate_session",
		"delete_session", "clean_expired_sessions"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	AuthAttemptsTotal.WithLabelValues("success")
	AuthAttemptsTotal.WithLabelValues("failure")
}
