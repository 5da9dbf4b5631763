package shipcheck

import "testing"

func BenchmarkDefaultConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DefaultConfig()
	}
}

func BenchmarkConfigValidate(b *testing.B) {
	cfg := DefaultConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cfg.Validate()
	}
}

func BenchmarkConfigValidate_WithEnv(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Env = []string{"DEPLOY_ENV=staging", "RELEASE_CHANNEL=beta", "CI=true"}
	cfg.TempDir = "/scratch/shipcheck/work"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cfg.Validate()
	}
}
