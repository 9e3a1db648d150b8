package analysis

import "testing"

func TestInflect(t *testing.T) {
	tests := []struct {
		word       string
		toSingular bool
		want       string
	}{
		{"posts", false, "posts"},
		{"posts", true, "post"},
		{"categories", true, "category"},
		{"classes", true, "class"},
		{"addresses", true, "address"},
		{"bus", true, "bu"},
		{"person", true, "person"},
		{"", true, ""},
	}
	for _, tt := range tests {
		if got := Inflect(tt.word, tt.toSingular); got != tt.want {
			t.Errorf("Inflect(%q, %v) = %q, want %q", tt.word, tt.toSingular, got, tt.want)
		}
	}
}

func TestAssociationTarget(t *testing.T) {
	tests := []struct {
		label      string
		toSingular bool
		want       string
	}{
		{"bar", false, "Bar"},
		{"posts", true, "Post"},
		{"blog_posts", true, "BlogPost"},
		{"blog_posts", false, "BlogPosts"},
		{"product_categories", true, "ProductCategory"},
		{"news", false, "News"},
		{"admin_user", false, "AdminUser"},
		{"a__b", false, "AB"},
		{"", true, ""},
	}
	for _, tt := range tests {
		if got := AssociationTarget(tt.label, tt.toSingular); got != tt.want {
			t.Errorf("AssociationTarget(%q, %v) = %q, want %q", tt.label, tt.toSingular, got, tt.want)
		}
	}
}
