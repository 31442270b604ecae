package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "learner",
			objectType:  "identity",
			identifier:  "default",
			paramsKey:   nil,
			expectedKey: "welearn:learner:identity:default",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "learner",
			objectType:  "identity",
			identifier:  "default",
			paramsKey:   []string{},
			expectedKey: "welearn:learner:identity:default",
		},
		{
			name:        "with one paramsKey",
			serviceName: "quiz",
			objectType:  "list",
			identifier:  "all",
			paramsKey:   []string{"param1"},
			expectedKey: "welearn:quiz:list:all:param1",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "reward",
			objectType:  "claim",
			identifier:  "u1",
			paramsKey:   []string{"param1", "param2", "param3"},
			expectedKey: "welearn:reward:claim:u1:param1_param2_param3",
		},
		{
			name:        "with paramsKey containing special characters",
			serviceName: "service",
			objectType:  "type",
			identifier:  "id",
			paramsKey:   []string{"param-1", "param_2"},
			expectedKey: "welearn:service:type:id:param-1_param_2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}

func TestNamedKeys(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{QuizListKey(), "welearn:quiz:list:all"},
		{RankingsKey(), "welearn:progress:rankings:all"},
		{ClaimLockKey("u1", "2024-06-15"), "welearn:reward:claim:u1:2024-06-15"},
		{IdentityKey("default"), "welearn:learner:identity:default"},
		{IdentityChannel("default"), "welearn:learner:identity:default:changes"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %v, want %v", tt.got, tt.want)
		}
	}
}
