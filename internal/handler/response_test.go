package handler

import (
	"testing"

	"github.com/hilalmustofa/simpleolshop/internal/model"
)

func TestPictureURL(t *testing.T) {
	v := views{baseURL: "http://localhost:5425"}
	tests := []struct {
		stored string
		want   string
	}{
		{"uploads/abc_kopi.png", "http://localhost:5425/uploads/abc_kopi.png"},
		{`uploads\abc_kopi.png`, "http://localhost:5425/uploads/abc_kopi.png"},
		{"/uploads/abc_kopi.png", "http://localhost:5425/uploads/abc_kopi.png"},
	}
	for _, tt := range tests {
		if got := v.pictureURL(tt.stored); got != tt.want {
			t.Errorf("pictureURL(%q) = %q, want %q", tt.stored, got, tt.want)
		}
	}
}

func TestOrderView_NilProduct(t *testing.T) {
	v := views{baseURL: "http://localhost:5425"}
	got := v.order(&model.OrderWithProduct{Order: model.Order{ID: "o-1", ProductID: "p-1", Quantity: 2}})
	if got.Product != nil {
		t.Errorf("Product = %+v, want nil", got.Product)
	}
	if got.Quantity != 2 || got.ProductID != "p-1" {
		t.Errorf("view = %+v", got)
	}
}
