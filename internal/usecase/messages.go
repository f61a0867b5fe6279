package usecase

// User-facing reply texts. Replies are in Vietnamese, the language of the shop.
const (
	msgLowConfidence = "❓ Xin lỗi, tôi không hiểu rõ yêu cầu của bạn. Bạn có thể nói rõ hơn được không?\n" +
		"💡 Ví dụ: 'Xem sản phẩm nổi bật', 'Xem danh mục', 'Thêm iPhone vào giỏ hàng'"
	msgUnrecognized = "❓ Xin lỗi, tôi không thể xử lý yêu cầu này. Hãy thử lại với yêu cầu rõ ràng hơn."

	msgProductsUnavailable   = "❌ Xin lỗi, hiện tại không thể lấy được danh sách sản phẩm. Vui lòng thử lại sau."
	msgCategoriesUnavailable = "❌ Xin lỗi, hiện tại không thể lấy được danh sách danh mục. Vui lòng thử lại sau."
	msgGenerationFailed      = "❌ Xin lỗi, đã có lỗi xảy ra: %s"

	msgMissingCategory  = "❌ Vui lòng chỉ định tên danh mục. Ví dụ: 'Xem sản phẩm trong danh mục điện thoại'"
	msgCategoryNotFound = "❌ Không tìm thấy danh mục: '%s'"
	msgCategoryEmpty    = "📂 Danh mục '%s' hiện tại chưa có sản phẩm nào."

	msgAddMissingProduct = "❌ Vui lòng chỉ định tên sản phẩm cần thêm vào giỏ hàng. Ví dụ: 'Thêm iPhone vào giỏ hàng'"
	msgProductNotFound   = "❌ Không tìm thấy sản phẩm: '%s'"
	msgAddNoStock        = "❌ Sản phẩm '%s' chỉ còn %d cái trong kho, không đủ để thêm %d cái."
	msgAddFailed         = "❌ Thêm vào giỏ hàng thất bại: %s"
	msgAdded             = "✅ Đã thêm %d cái '%s' vào giỏ hàng!\n💰 Giá: %s VNĐ/cái\n\n🛒 Bạn có muốn xem giỏ hàng hoặc tiếp tục mua sắm không?"
	msgAvailableForGuest = "✅ Sản phẩm '%s' có sẵn trong kho!\n\n📦 **Thông tin sản phẩm:**\n• Tên: %s\n• Giá: %s VNĐ\n• Còn lại: %d cái\n\n🛒 Sản phẩm sẽ được thêm tự động vào giỏ hàng của bạn!"

	msgRemoveMissingProduct = "❌ Vui lòng chỉ định tên sản phẩm cần xóa khỏi giỏ hàng. Ví dụ: 'Xóa iPhone khỏi giỏ hàng'"
	msgProductNotInCatalog  = "❌ Không tìm thấy sản phẩm: '%s' trong hệ thống"
	msgRemoveFailed         = "❌ Xóa sản phẩm thất bại: %s"
	msgRemoved              = "✅ Đã xóa '%s' khỏi giỏ hàng thành công!"
	msgRemovedFromGuestCart = "✅ Đã xóa '%s' khỏi giỏ hàng!\n\n🛒 Giỏ hàng hiện tại có %d sản phẩm."
	msgNotInCart            = "❌ Không tìm thấy '%s' trong giỏ hàng của bạn"
	msgRemoveEmptyCart      = "❌ Giỏ hàng của bạn hiện tại trống, không có sản phẩm nào để xóa"

	msgUpdateMissingProduct = "❌ Vui lòng chỉ định tên sản phẩm cần cập nhật số lượng. Ví dụ: 'Chỉnh số lượng iPhone thành 2'"
	msgUpdateBadQuantity    = "❌ Số lượng phải lớn hơn 0. Nếu muốn xóa sản phẩm, hãy dùng lệnh 'xóa [tên sản phẩm] khỏi giỏ hàng'"
	msgUpdateNoStock        = "❌ Sản phẩm '%s' chỉ còn %d cái trong kho, không đủ để cập nhật thành %d cái."
	msgUpdateFailed         = "❌ Cập nhật số lượng thất bại: %s"
	msgUpdated              = "✅ Đã cập nhật số lượng '%s' thành %d cái!\n💰 Giá: %s VNĐ/cái"
	msgUpdatedGuestCart     = "✅ Đã cập nhật số lượng '%s' thành %d cái!\n\n🛒 Giỏ hàng hiện tại có %d sản phẩm.\n\n💡 **Quan trọng:** Vui lòng làm mới trang hoặc truy cập lại giỏ hàng để thấy thay đổi."
	msgUpdateEmptyCart      = "❌ Giỏ hàng của bạn hiện tại trống, không có sản phẩm nào để cập nhật số lượng"

	msgCartEmpty     = "🛒 Giỏ hàng của bạn hiện tại trống.\n\nHãy thêm sản phẩm vào giỏ hàng trước khi xem!"
	msgCartGuideline = "🛒 **Xem giỏ hàng của bạn:**\n\nGiỏ hàng của bạn hiện tại trống.\n\n" +
		"Để xem các sản phẩm trong giỏ hàng, hãy:\n\n" +
		"1. **Truy cập trang giỏ hàng:** Nhấn vào biểu tượng giỏ hàng ở header\n" +
		"2. **Hoặc đi đến:** `/cart`\n\n" +
		"📱 **Trên mobile:** Menu → Giỏ hàng\n\n" +
		"💡 **Mẹo:** Giỏ hàng của bạn được lưu tự động trong trình duyệt!"

	msgLoginToOrder = "❌ Vui lòng đăng nhập để đặt hàng."
	msgOrderFailed  = "❌ Đặt hàng thất bại: %s"
	msgOrderPlaced  = "✅ Đặt hàng thành công! Mã đơn hàng: %s"
)
