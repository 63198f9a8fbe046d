package validation

// ProductRules は商品の作成・更新時の検証ルール。
var ProductRules = []Rule{
	{Field: "name", Check: Length(3, 50), Message: LengthMessage("name", 3, 50)},
	{Field: "description", Check: Length(3, 300), Message: LengthMessage("description", 3, 300)},
	{Field: "price", Check: Length(3, 20), Message: LengthMessage("price", 3, 20)},
	{Field: "price", Check: Decimal(), Message: "price must be a number"},
}

// OrderRules は注文作成時の検証ルール。
var OrderRules = []Rule{
	{Field: "product", Check: Length(1, 64), Message: "product is required"},
	{Field: "quantity", Check: Int(1, 1_000_000), Message: "quantity must be a whole number of at least 1"},
}

// SignupRules はサインアップ時の検証ルール。
var SignupRules = []Rule{
	{Field: "email", Check: Length(3, 254), Message: LengthMessage("email", 3, 254)},
	{Field: "email", Check: Email(), Message: "email must be a valid email address"},
	{Field: "password", Check: Length(6, 72), Message: LengthMessage("password", 6, 72)},
	{Field: "password", Check: MaxBytes(72), Message: LengthMessage("password", 6, 72)},
}

// LoginRules はログイン時の検証ルール。
var LoginRules = []Rule{
	{Field: "email", Check: Length(1, 254), Message: "email is required"},
	{Field: "password", Check: Length(1, 72), Message: "password is required"},
	{Field: "password", Check: MaxBytes(72), Message: "password length should be 1 to 72 characters"},
}
